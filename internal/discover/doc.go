// Package discover locates cuesheet files under a starting path.
package discover
