// Package services defines the shared error taxonomy used to classify
// failures across parsing, planning, and encoding.
package services
