// Package questions provides the fixed set of quiz generators used by input prompts.
//
// Generators are addressed by Kind. Content refers to them by name, so the
// registry parses names into kinds and rejects unknown names explicitly.
package questions
