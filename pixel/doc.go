// Package pixel implements the in-memory PWM framebuffer used by the
// is31fl373x driver.
//
// A Buffer mirrors one chip's PWM register page, one byte of intensity per
// pixel in row-major order. It performs no I/O; flushing the buffer to the
// chip is the driver's job.
package pixel
