//go:build !vkdebug

package vkdriver

// SetDebugName is a no-op unless built with the vkdebug tag.
func (d *device) SetDebugName(object any, name string) error { return nil }
