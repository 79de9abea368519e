package conversation

import "time"

// dateLayout matches the dd/mm/yyyy rendering the mobile client uses for
// messages older than yesterday.
const dateLayout = "02/01/2006"

// DayLabel renders the day bucket of ts relative to now: "today", "yesterday"
// or an absolute date. Buckets compare calendar dates, not 24h windows, so a
// message from 23:59 is "yesterday" one minute after midnight.
func DayLabel(ts time.Time, now time.Time) string {
	switch {
	case sameCalendarDay(ts, now):
		return "today"
	case sameCalendarDay(ts, now.AddDate(0, 0, -1)):
		return "yesterday"
	default:
		return ts.Format(dateLayout)
	}
}

// TimeLabel renders the HH:MM stamp shown next to a message bubble.
func TimeLabel(ts time.Time) string {
	return ts.Format("15:04")
}

// ShouldInsertDateSeparator decides whether a day separator belongs before
// curr. A nil prev means curr opens the list. When either message lacks a
// timestamp the answer is false; the directory and the stream share this
// conservative rule so the two views never disagree.
func ShouldInsertDateSeparator(prev *Message, curr Message) bool {
	if prev == nil {
		return true
	}
	if prev.SentAt.IsZero() || curr.SentAt.IsZero() {
		return false
	}
	return !sameCalendarDay(prev.SentAt, curr.SentAt)
}

// sameCalendarDay compares calendar dates in b's location, so server-side UTC
// timestamps bucket consistently against a caller-supplied local "now".
func sameCalendarDay(a time.Time, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
