// Package gesture defines the typed remote-input command protocol: the
// command variants, the wire codecs that carry them, and the execution
// gate that decides whether a decoded command may reach the executor.
package gesture

import (
	"fmt"
	"time"
)

// Action is the wire discriminator for a command variant.
type Action string

const (
	ActionTap       Action = "tap"
	ActionSwipe     Action = "swipe"
	ActionLongPress Action = "long-press"
	ActionScroll    Action = "scroll"
	ActionTextInput Action = "text-input"
	ActionBack      Action = "back"
	ActionHome      Action = "home"
	ActionRecents   Action = "recents"
)

// Command is one remote-input instruction. Coordinates are normalized
// floats in [0,1]; scaling to device pixels is the executor's job.
// Every command carries the moment it was captured on the controller.
type Command interface {
	Action() Action
	CapturedAt() time.Time
}

type Tap struct {
	X, Y float64
	At   time.Time
}

type Swipe struct {
	StartX, StartY float64
	EndX, EndY     float64
	Duration       time.Duration
	At             time.Time
}

type LongPress struct {
	X, Y     float64
	Duration time.Duration
	At       time.Time
}

type Scroll struct {
	StartX, StartY float64
	DeltaX, DeltaY float64
	Duration       time.Duration
	At             time.Time
}

type TextInput struct {
	Text string
	At   time.Time
}

type Back struct{ At time.Time }

type Home struct{ At time.Time }

type Recents struct{ At time.Time }

func (c Tap) Action() Action       { return ActionTap }
func (c Swipe) Action() Action     { return ActionSwipe }
func (c LongPress) Action() Action { return ActionLongPress }
func (c Scroll) Action() Action    { return ActionScroll }
func (c TextInput) Action() Action { return ActionTextInput }
func (c Back) Action() Action      { return ActionBack }
func (c Home) Action() Action      { return ActionHome }
func (c Recents) Action() Action   { return ActionRecents }

func (c Tap) CapturedAt() time.Time       { return c.At }
func (c Swipe) CapturedAt() time.Time     { return c.At }
func (c LongPress) CapturedAt() time.Time { return c.At }
func (c Scroll) CapturedAt() time.Time    { return c.At }
func (c TextInput) CapturedAt() time.Time { return c.At }
func (c Back) CapturedAt() time.Time      { return c.At }
func (c Home) CapturedAt() time.Time      { return c.At }
func (c Recents) CapturedAt() time.Time   { return c.At }

// Describe renders a command for logs and the activity trail.
func Describe(cmd Command) string {
	switch c := cmd.(type) {
	case Tap:
		return fmt.Sprintf("tap(%.3f, %.3f)", c.X, c.Y)
	case Swipe:
		return fmt.Sprintf("swipe(%.3f, %.3f -> %.3f, %.3f, %s)", c.StartX, c.StartY, c.EndX, c.EndY, c.Duration)
	case LongPress:
		return fmt.Sprintf("long-press(%.3f, %.3f, %s)", c.X, c.Y, c.Duration)
	case Scroll:
		return fmt.Sprintf("scroll(%.3f, %.3f, delta %.3f, %.3f, %s)", c.StartX, c.StartY, c.DeltaX, c.DeltaY, c.Duration)
	case TextInput:
		return fmt.Sprintf("text-input(%d chars)", len(c.Text))
	default:
		return string(cmd.Action())
	}
}
