/*
Package domain contains the core domain models of the Novella narrative engine.

It defines the story graph entities and the per-player session record. This
package is kept pure and free of I/O and persistence concerns.

# Key Entities

  - Node: one step of the narrative (text, images, choices, quiz prompt).
  - Choice: a player-selectable edge, optionally gated by a Requirement and optionally mutating state via an Action.
  - InputPrompt: a quiz configuration branching on correct or incorrect answers.
  - Session: the mutable progress of one player (flags, history, pending answer).
  - LocaleBundle: every node and UI string of one locale.
*/
package domain
