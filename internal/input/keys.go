package input

// IsExtendedKey reports whether vk sits on the extended (0xE0-prefixed) part of
// the keyboard. A scan code sent for such a key without the extended flag
// lands on its numpad twin, so HOME would type numpad 7.
func IsExtendedKey(vk VirtualKey) bool {
	switch vk {
	// ctrl+break, navigation block, arrows
	case 0x03, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28:
		return true
	// print screen, insert, delete, windows keys, apps
	case 0x2C, 0x2D, 0x2E, 0x5B, 0x5C, 0x5D:
		return true
	// numpad divide, num lock, right ctrl, right alt
	case 0x6F, 0x90, 0xA3, 0xA5:
		return true
	}
	return false
}
