// Package gob reads and writes GOB archives, a fixed binary container
// that packs named files into one blob: a 12-byte header, a fixed-width
// file table, and concatenated payload bytes.
//
// Layout (all integers little-endian u32):
//
//	offset 0    signature "GOB "
//	offset 4    version 0x14
//	offset 8    body offset (always 12 when written by this package)
//	body        file count N
//	body+4      table, N×136 bytes: [payload offset][payload size][path, 128 bytes zero-padded]
//	body+4+136N payload region, record data in table order
//
// Payload offsets are absolute from the start of the stream. Paths are
// limited to 128 encoded bytes; the limit is enforced when records are
// created, never by truncation.
//
// # Quick Start
//
// Pack a directory and save it:
//
//	archive, err := gob.ImportDir(ctx, "./assets")
//	if err != nil {
//	    return err
//	}
//	if err := archive.Save("assets.gob"); err != nil {
//	    return err
//	}
//
// Open an archive and read a file:
//
//	archive, err := gob.OpenFile("assets.gob")
//	if err != nil {
//	    return err
//	}
//	content, err := archive.ReadFile("textures/floor.pcx")
//
// Archive implements fs.FS and friends, so a parsed archive works with
// fs.WalkDir, template loading, and anything else that accepts a
// filesystem.
package gob
