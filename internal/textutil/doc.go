// Package textutil provides small text helpers shared by the naming
// template engine and output planning.
package textutil
