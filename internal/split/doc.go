// Package split plans per-track encode jobs from a parsed cuesheet and
// drives them through a bounded worker pool of external encoder processes.
package split
