// Package logic holds the five content transforms that turn a canonical
// product into structured page fragments.
//
// Every function here is pure: no I/O, no shared state, no errors. Missing
// product data yields empty lists and domain.NotAvailable markers, never a
// failure. Generation-dependent enhancement lives in the page agents, not here.
//
// # Import Rules
//
//   - Can Import: domain package and the standard library
//   - Cannot Import: ports, services or adapters
package logic
