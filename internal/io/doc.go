// Package ioutils provides file system and image inspection utilities.
//
// This package contains functions for:
//   - Copying files without ever overwriting an existing destination
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation and emptiness checks
//   - Reading image dimensions
//
// # File Operations
//
//	// Copy a file unless the destination already exists
//	copied, n, err := ioutils.CopyFileIfMissing(ctx, "/site/media/1/sun.jpg", "/export/Sun.jpg")
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/export/Images")
//
// # Filename Sanitization
//
// Use SanitizeFileName to replace invalid characters in names:
//
//	safe := ioutils.SanitizeFileName("Sún*Rise") // Returns "Sún_Rise"
//
// # Image Inspection
//
//	svc := ioutils.NewImageService()
//	info, _ := svc.Inspect(ctx, "/export/Images/Sun.jpg")
package ioutils
