// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

// Package ceremony orchestrates WebAuthn registration and authentication
// ceremonies for a Relying Party.
//
// A ceremony has two steps. The begin step resolves the subject in the
// account directory, issues a challenge and returns the client-facing
// options document. The finish step consumes the challenge, hands the raw
// authenticator response to the credential verifier and, on success,
// persists the outcome (a new credential, or an updated signature counter
// plus a session grant).
//
// The package depends on three collaborators behind small interfaces: the
// account directory (pkg/directory), the challenge ledger (pkg/challenge)
// and the credential verifier (pkg/verifier). NewService wires in-process
// defaults for all of them so a caller only has to provide configuration.
package ceremony
