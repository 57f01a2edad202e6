// Package normalisers turns uploaded status reports into plain text for
// snapshot extraction. Each subpackage handles one report format; the
// Registry here dispatches a raw document to the best normaliser for its
// MIME type.
//
// Normalisers are registered with the Registry at startup.
package normalisers
