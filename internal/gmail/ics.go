package gmail

import (
	"regexp"
	"strings"
)

var (
	mailtoRe = regexp.MustCompile(`mailto:(.*)`)
	cnRe     = regexp.MustCompile(`CN=(.*?)(:|;)`)
)

// Attendee is one ATTENDEE line reduced to its display name and address.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Invite is the event data lifted from a text/calendar attachment. Raw
// keeps the complete source so workflows can re-export the file.
type Invite struct {
	Summary        string     `json:"summary"`
	Start          string     `json:"datetime_start"`
	End            string     `json:"datetime_end"`
	TZID           string     `json:"tzid"`
	OrganizerName  string     `json:"organizer_name"`
	OrganizerEmail string     `json:"organizer_email"`
	Attendees      []Attendee `json:"attendees"`
	Raw            string     `json:"ics_file"`
}

// ParseICS extracts the event fields from iCalendar content. Properties
// inside VALARM blocks are skipped so an alarm summary cannot shadow the
// event's own, and the timezone comes from the VTIMEZONE component.
func ParseICS(ics string) *Invite {
	// Folded lines start with a space; join them before scanning.
	unfolded := strings.NewReplacer("\r\n ", "", "\n ", "").Replace(ics)

	inv := &Invite{Attendees: []Attendee{}, Raw: ics}
	var inEvent, inAlarm, inTimezone bool
	var tzid string

	for _, line := range strings.Split(unfolded, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "BEGIN:VTIMEZONE"):
			inTimezone = true
		case strings.HasPrefix(line, "END:VTIMEZONE"):
			inTimezone = false
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			inEvent = true
		case strings.HasPrefix(line, "END:VEVENT"):
			inEvent = false
			inv.TZID = tzid
		case strings.HasPrefix(line, "BEGIN:VALARM"):
			inAlarm = true
		case strings.HasPrefix(line, "END:VALARM"):
			inAlarm = false
		}

		if inTimezone && strings.HasPrefix(line, "TZID:") {
			tzid = propertyValue(line)
		}
		if inEvent && !inAlarm {
			switch {
			case strings.HasPrefix(line, "SUMMARY:"):
				inv.Summary = propertyValue(line)
			case strings.HasPrefix(line, "DTSTART:"):
				inv.Start = propertyValue(line)
			case strings.HasPrefix(line, "DTEND:"):
				inv.End = propertyValue(line)
			case strings.Contains(line, "ORGANIZER"):
				inv.OrganizerEmail = firstGroup(mailtoRe, line)
				inv.OrganizerName = firstGroup(cnRe, line)
			}
		}
		if strings.Contains(line, "ATTENDEE") && !inAlarm {
			inv.Attendees = append(inv.Attendees, Attendee{
				Name:  firstGroup(cnRe, line),
				Email: firstGroup(mailtoRe, line),
			})
		}
	}
	return inv
}

// propertyValue returns everything after the first colon.
func propertyValue(line string) string {
	_, v, _ := strings.Cut(line, ":")
	return v
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
