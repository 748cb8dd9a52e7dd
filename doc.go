// Package teller provides the session and transaction orchestration core of
// the `tlr` command-line banking client. It is designed around one rule: the
// remote ledger service owns the account balance, and this package only ever
// observes it.
//
// The core responsibilities are:
//   - Session Management: persisting the session credential on disk after a
//     successful login, attaching it as a bearer token to every outbound
//     request, and clearing it on logout or when the service rejects it.
//   - Operation Orchestration: validating and executing deposit, withdraw,
//     and transfer requests through a single-flight state machine, so at most
//     one balance-mutating request is ever on the wire.
//   - Balance Reconciliation: after every successful mutation, re-fetching
//     the authoritative balance rather than computing it locally.
//   - Failure Classification: mapping validation, server, and transport
//     failures into presentable user messages.
//
// This package serves as the foundational logic for the `tlr` command-line
// tool; the cmd package only parses flags and prints.
package teller
