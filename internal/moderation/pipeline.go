package moderation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sentinelbot/sentinel-backend/internal/models"
	"github.com/sentinelbot/sentinel-backend/internal/platform"
)

// Classifier is the content-safety oracle. True means unsafe. Errors are for
// the pipeline's fail policy to absorb; the adapter itself never retries.
type Classifier interface {
	Classify(ctx context.Context, text string) (bool, error)
}

// FailMode is the named policy for classifier failures. FailOpen trades
// strictness for availability: an unreachable or erroring oracle classifies
// everything as safe. FailClosed treats the same failures as unsafe.
type FailMode string

const (
	FailOpen   FailMode = "open"
	FailClosed FailMode = "closed"
)

// Sink receives one human-readable line per moderation event. A nil sink is
// a no-op, never an error.
type Sink interface {
	Record(text string)
}

// Archiver persists violation records for observability. Optional.
type Archiver interface {
	Archive(ctx context.Context, v models.Violation)
}

// Outcome summarizes what the pipeline did with one message.
type Outcome struct {
	Ignored          bool                 // bot author or exempt role
	Violation        models.ViolationType // empty when the message passed
	StrikeCount      int
	Action           ActionKind
	EligibleForReply bool // clean messages may get a chatbot reply downstream
}

// Pipeline is the canonical moderation flow. The three per-user stores
// (spam window, strike record, conversation context) are each owned by their
// component; the pipeline only calls their operations.
type Pipeline struct {
	Spam       *SpamDetector
	Classifier Classifier
	FailMode   FailMode
	Strikes    *StrikeTracker
	Exec       *Executor
	Platform   platform.Client
	Exempt     map[string]struct{} // role IDs that bypass moderation entirely
	Sink       Sink
	Archiver   Archiver
}

// Process runs one inbound message through the moderation state machine,
// terminal on the first matching branch. Safe to call concurrently; per-user
// state is serialized inside the stores.
func (p *Pipeline) Process(ctx context.Context, msg models.Message) Outcome {
	if msg.AuthorBot {
		return Outcome{Ignored: true}
	}
	for _, role := range msg.AuthorRoles {
		if _, ok := p.Exempt[role]; ok {
			// Exempt authors skip everything, including the spam bookkeeping.
			return Outcome{Ignored: true}
		}
	}

	now := msg.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Cheap local check first, remote oracle only if it passes.
	var violation models.ViolationType
	if p.Spam.Observe(msg.AuthorID, now) {
		violation = models.ViolationTypeSpam
	} else {
		unsafe, err := p.Classifier.Classify(ctx, msg.Content)
		if err != nil {
			unsafe = p.FailMode == FailClosed
		}
		if unsafe {
			violation = models.ViolationTypeContent
		}
	}

	if violation == "" {
		return Outcome{EligibleForReply: true}
	}

	count := p.Strikes.RecordViolation(msg.AuthorID, now)
	decision := Decide(count, string(violation))

	reason := fmt.Sprintf("strike %d: %s", count, violation)
	if err := p.Exec.Apply(ctx, decision, msg.AuthorID, reason); err != nil {
		log.Printf("moderation: %s for %s failed: %v", decision.Kind, msg.AuthorID, err)
		p.record(fmt.Sprintf("ACTION FAILED: %s for %s (%s): %v", decision.Kind, msg.AuthorID, reason, err))
	}

	if msg.ID != "" && msg.ChannelID != "" {
		if err := p.Platform.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
			log.Printf("moderation: delete message %s failed: %v", msg.ID, err)
		}
	}

	if p.Archiver != nil {
		p.Archiver.Archive(ctx, models.Violation{
			CreatedAt:   now,
			UserID:      msg.AuthorID,
			ChannelID:   msg.ChannelID,
			MessageID:   msg.ID,
			Type:        violation,
			Message:     msg.Content,
			StrikeCount: count,
			ActionTaken: string(decision.Kind),
		})
	}
	p.record(fmt.Sprintf("%s received strike %d: %s", msg.AuthorID, count, violation))

	return Outcome{Violation: violation, StrikeCount: count, Action: decision.Kind}
}

func (p *Pipeline) record(text string) {
	if p.Sink != nil {
		p.Sink.Record(text)
	}
}
