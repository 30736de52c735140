// Package presets holds the immutable encoder preset table: named ffmpeg
// argument sets with their default output extensions.
package presets
