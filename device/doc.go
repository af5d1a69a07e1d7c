// Package device enumerates USB-attached CircuitPython devices and selects
// among them.
//
// Devices come in two disjoint kinds that are modeled separately because
// their identifying attributes differ:
//
//   - Device: a board running CircuitPython normally, exposing a CIRCUITPY
//     volume and usually a serial port. Identified by USB vendor/model/serial
//     strings from udev.
//   - BootloaderDevice: a board waiting in its UF2 bootloader, exposing a
//     mass-storage volume with an INFO_UF2.TXT signature file. The bootloader
//     frequently reports a different serial number than the normal-mode
//     firmware, so identity is never assumed to carry across the transition.
//
// # Queries
//
// A Query is a vendor:model:serial triple of case-sensitive substring
// filters; empty fields match anything.
//
//	q, err := device.ParseQuery("Raspberry::")
//	matched := device.Filter(q, devices)
//	one, err := device.ResolveSingle(q, devices)
//
// Enumeration always produces a fresh snapshot; nothing in this package
// caches global device state, so tests substitute deterministic fixtures.
package device
