package ioctl

// Linux generic ioctl request encoding (asm-generic/ioctl.h).
// Direction in the top 2 bits, then 14 bits of argument size, type and number.
const (
	none  = 0
	write = 1
	read  = 2
)

func io(mode byte, type_ byte, number byte, size uint16) uint {
	return uint(mode)<<30 | uint(size&0x3FFF)<<16 | uint(type_)<<8 | uint(number)
}

// IO - request without argument
func IO(type_ byte, number byte) uint {
	return io(none, type_, number, 0)
}

// IOR - kernel writes the argument, _IOR in C
func IOR(type_ byte, number byte, size uint16) uint {
	return io(read, type_, number, size)
}

// IOW - kernel reads the argument, _IOW in C
func IOW(type_ byte, number byte, size uint16) uint {
	return io(write, type_, number, size)
}

func IORW(type_ byte, number byte, size uint16) uint {
	return io(read|write, type_, number, size)
}
