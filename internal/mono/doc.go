// Package mono turns checked, possibly generic functions into the concrete
// program handed to a backend.
//
// Instantiation starts at the entry function and follows every call and
// function reference. An instance is keyed by the template function, the
// concrete function type it is used at, its mode and, for decl wrappers, the
// mask of supplied arguments; a key is queued at most once. Calls that
// analysis deferred because their operands were generic are resolved here,
// either to a builtin operator or to a trait implementation.
//
// Program.Types is ordered so that every type follows the types it holds by
// value. Pointers, references and function types do not own their targets,
// which is what lets a struct point at itself; holding itself by value is a
// fatal diagnostic.
package mono
