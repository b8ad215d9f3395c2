// Package joybus implements the host side of the single-wire Joybus link
// used by GameCube controllers.
//
// The wire is open drain and idles high. Every bit takes 4µs: a one is
// 1µs low followed by 3µs high, a zero is 3µs low followed by 1µs high.
// Bytes are sent most significant bit first and a host frame ends with a
// 1µs stop pulse. The peripheral answers after the stop pulse in the same
// encoding.
//
// Bit timing is left to a real-time codec reached through the [Link]
// interface: a PIO state machine on the RP2040 (see package piolib) or the
// software codec in package joybustest. [Bus] drives one transfer at a time
// over a Link, bounding each response byte by [ByteTimeout] and keeping the
// bus idle for [IdleTime] afterwards.
package joybus
