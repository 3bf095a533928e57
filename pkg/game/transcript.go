package game

import (
	"github.com/consensuslabs/chronicle/pkg/participant"
	"github.com/consensuslabs/chronicle/pkg/story"
)

// TranscriptKind classifies a line of the accumulated narrative.
type TranscriptKind string

const (
	TranscriptOpening TranscriptKind = "opening"
	TranscriptContext TranscriptKind = "context"
	TranscriptChoice  TranscriptKind = "choice"
	TranscriptOutcome TranscriptKind = "outcome"
)

// TranscriptEntry is one line of the session's narrative record.
type TranscriptEntry struct {
	Kind   TranscriptKind
	Round  int
	Winner story.Branch // set for choice and outcome entries
	Text   string
}

// MessageKind distinguishes system notices from participant chatter.
type MessageKind string

const (
	MessageSystem MessageKind = "system"
	MessageChat   MessageKind = "chat"
)

// Message is one entry of the room's activity feed.
type Message struct {
	Kind    MessageKind
	From    *participant.Participant // nil for system messages
	Leaning story.Branch             // the branch the line argues for, if any
	Text    string
}

// feedLimit bounds the retained activity feed.
const feedLimit = 40

// RoundResult summarizes a resolved round for display.
type RoundResult struct {
	Round  int
	Winner story.Branch
	CountA int
	CountB int
}
