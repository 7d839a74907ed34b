// Package timeline renders the approval history of a task as a display-ready
// list of entries. The stored record log is append-only; this package only
// reads it and derives presentation.
package timeline

import (
	"fmt"

	"github.com/bigbit/approvalflow/pkg/models"
)

// Tone is the visual accent of a timeline entry.
type Tone string

const (
	ToneBlue   Tone = "blue"
	ToneGreen  Tone = "green"
	ToneRed    Tone = "red"
	ToneOrange Tone = "orange"
	ToneGray   Tone = "gray"
)

// ActionDisplay is the label and accent an action renders with.
type ActionDisplay struct {
	Label string
	Tone  Tone
}

var actionDisplays = map[models.ActionType]ActionDisplay{
	models.ActionSubmit:      {Label: "提交申请", Tone: ToneBlue},
	models.ActionApprove:     {Label: "审批通过", Tone: ToneGreen},
	models.ActionReject:      {Label: "审批驳回", Tone: ToneRed},
	models.ActionForward:     {Label: "转办", Tone: ToneBlue},
	models.ActionCountersign: {Label: "加签", Tone: ToneOrange},
	models.ActionWithdraw:    {Label: "撤回", Tone: ToneGray},
	models.ActionPending:     {Label: "待处理", Tone: ToneGray},
}

// DisplayFor returns the display config for an action. Unknown actions fall
// back to a gray entry labeled with the raw action string rather than being
// dropped from the history.
func DisplayFor(action models.ActionType) ActionDisplay {
	if display, ok := actionDisplays[action]; ok {
		return display
	}

	return ActionDisplay{Label: string(action), Tone: ToneGray}
}

// Entry is one rendered timeline item.
type Entry struct {
	ID           string            `json:"id"`
	Operator     models.UserRef    `json:"operator"`
	Action       models.ActionType `json:"action"`
	ActionLabel  string            `json:"action_label"`
	Tone         Tone              `json:"tone"`
	NodeName     string            `json:"node_name"`
	Comment      string            `json:"comment,omitempty"`
	Time         string            `json:"time"`
	Duration     string            `json:"duration,omitempty"`
	IsCurrent    bool              `json:"is_current,omitempty"`
	FoldedMarker bool              `json:"folded_marker,omitempty"`
}

// Append extends the record log with one entry and returns the new log.
// The input slice is left untouched and existing records are never
// modified or removed.
func Append(records []*models.ApprovalRecord, record *models.ApprovalRecord) []*models.ApprovalRecord {
	out := make([]*models.ApprovalRecord, len(records), len(records)+1)
	copy(out, records)

	return append(out, record)
}

// Render turns approval records into display entries, preserving record
// order. When maxItems > 0 and the log is longer, the tail folds into a
// single marker entry stating how many records were hidden. maxItems <= 0
// renders everything.
func Render(records []*models.ApprovalRecord, maxItems int) []Entry {
	display := records
	folded := 0

	if maxItems > 0 && len(records) > maxItems {
		display = records[:maxItems]
		folded = len(records) - maxItems
	}

	entries := make([]Entry, 0, len(display)+1)

	for _, record := range display {
		config := DisplayFor(record.Action)

		entries = append(entries, Entry{
			ID:          record.ID,
			Operator:    record.Operator,
			Action:      record.Action,
			ActionLabel: config.Label,
			Tone:        config.Tone,
			NodeName:    record.NodeName,
			Comment:     record.Comment,
			Time:        record.Timestamp.Format("01-02 15:04"),
			Duration:    FormatDuration(record.DurationMinutes),
			IsCurrent:   record.IsCurrent,
		})
	}

	if folded > 0 {
		entries = append(entries, Entry{
			ID:           "more",
			ActionLabel:  fmt.Sprintf("还有 %d 条记录", folded),
			Tone:         ToneGray,
			FoldedMarker: true,
		})
	}

	return entries
}

// FormatDuration renders a minute count as a compact human duration.
// Zero and negative values render empty, matching records that carry no
// processing time.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}

	if minutes < 60 {
		return fmt.Sprintf("%d分钟", minutes)
	}

	hours := minutes / 60
	mins := minutes % 60

	if hours < 24 {
		if mins > 0 {
			return fmt.Sprintf("%d小时%d分钟", hours, mins)
		}

		return fmt.Sprintf("%d小时", hours)
	}

	days := hours / 24
	remainHours := hours % 24

	if remainHours > 0 {
		return fmt.Sprintf("%d天%d小时", days, remainHours)
	}

	return fmt.Sprintf("%d天", days)
}
