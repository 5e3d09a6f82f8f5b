// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery locates the pfd endpoint.
//
// A [Resolver] evaluates an ordered pipeline of [Source] values. Each
// source is one of three kinds:
//
//   - [Explicit]: a path given on the command line. Returned without
//     checking that it exists.
//   - [Environment]: environment variable names probed in order. The
//     first variable that is set and non-empty wins.
//   - [LocalFile]: well-known socket names probed in a directory under
//     a [Visibility] policy. The first path that exists wins.
//
// The first source that produces a path ends the pipeline. When none
// does, Resolve returns [ErrEndpointNotFound].
//
// The daemon does not probe. [CreatePath] picks its listening path
// deterministically: the first configured name, dot-prefixed under
// [Hidden] and [Both]. A client resolving under Both also accepts an
// existing non-hidden file, so the two sides are deliberately
// asymmetric.
//
// A path found by existence is not proof that a daemon is listening.
// A daemon killed without cleanup leaves its socket file behind, and
// the connect that follows discovery reports the failure.
package discovery
