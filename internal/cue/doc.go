// Package cue parses cuesheets into an immutable track/time model.
//
// Positions are kept as whole audio-CD frames (75 per second) so track
// boundary arithmetic stays exact across an entire album; conversion to
// decimal seconds happens only at the encoder boundary.
package cue
