// Package typematic synthesizes key auto-repeat events in software.
//
// Window systems and kernels usually auto-repeat held keys themselves,
// but raw input streams (evdev grabs, game engines reporting physical
// transitions, custom device protocols) carry no repeat semantics at
// all. A Repeater takes such a raw stream of timestamped press and
// release events and regenerates repeats with caller-controlled timing:
// one initial press, a first repeat after a fixed timeout, and further
// repeats at a fixed interval for as long as the key stays down.
//
// A Repeater performs no I/O and owns no clock or goroutine. The caller
// feeds events with Press and Release as they arrive and calls Tick
// with the current time whenever convenient, typically right before
// blocking in its event loop. Tick hands every due event to the
// caller's handler, one call per event, and returns the deadline at
// which it wants to run next. Infrequent polling is lossless: events
// that became due between ticks are delivered late rather than
// dropped, and their count is exact.
//
// The companion packages source and loop supply the surrounding glue:
// event sources (evdev capture, recorded sessions, Lua scripts,
// websocket feeds) and a runner that drives a Repeater from a source
// on a real or simulated clock.
package typematic
