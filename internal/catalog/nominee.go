package catalog

import "strings"

// RawNominee is a nominee record as it appears in the catalog file. Exactly one of
// Song, Name or Film identifies the nominee; the other fields describe it.
type RawNominee struct {
	Film               string   `json:"film,omitempty"`
	Name               string   `json:"name,omitempty"`
	Song               string   `json:"song,omitempty"`
	Country            string   `json:"country,omitempty"`
	Writers            []string `json:"writers,omitempty"`
	Directors          []string `json:"directors,omitempty"`
	Producers          []string `json:"producers,omitempty"`
	Filmmakers         []string `json:"filmmakers,omitempty"`
	Editors            []string `json:"editors,omitempty"`
	Artists            []string `json:"artists,omitempty"`
	SoundTeam          []string `json:"sound_team,omitempty"`
	VFXTeam            []string `json:"vfx_team,omitempty"`
	CastingDirector    string   `json:"casting_director,omitempty"`
	Cinematographer    string   `json:"cinematographer,omitempty"`
	Composer           string   `json:"composer,omitempty"`
	Designer           string   `json:"designer,omitempty"`
	ProductionDesigner string   `json:"production_designer,omitempty"`
	SetDecorator       string   `json:"set_decorator,omitempty"`
	Songwriters        []string `json:"songwriters,omitempty"`
}

// Kind tags the shape of a resolved nominee.
type Kind uint8

const (
	KindFilm Kind = iota
	KindSong
	KindPerson
	KindInternational
	KindScreenplay
	KindDirected
	KindCredits
	KindTeam
	KindCredit
	KindProductionDesign
)

var kindNames = [...]string{
	KindFilm:             "film",
	KindSong:             "song",
	KindPerson:           "person",
	KindInternational:    "international",
	KindScreenplay:       "screenplay",
	KindDirected:         "directed",
	KindCredits:          "credits",
	KindTeam:             "team",
	KindCredit:           "credit",
	KindProductionDesign: "production_design",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Nominee is a RawNominee resolved once into a single variant.
type Nominee struct {
	Kind Kind
	// Film is the film title, "Unknown" for film-keyed nominees without one.
	Film string
	// Subject is the song title (KindSong) or person name (KindPerson).
	Subject string
	// Names holds writers, directors, crew lists or team members.
	Names []string
	// Credit is the single credited person, or the production designer.
	Credit       string
	SetDecorator string
}

// Display is the uniform rendering of a nominee.
type Display struct {
	PickKey       string `json:"pick_key"`
	PrimaryLine   string `json:"primary_line"`
	SecondaryLine string `json:"secondary_line"`
}

const unknownFilm = "Unknown"

// Resolve picks the variant for raw. The first present field wins, in this order:
// song, name, then film keyed records by their descriptor.
func Resolve(raw RawNominee) Nominee {
	if raw.Song != "" {
		return Nominee{Kind: KindSong, Subject: raw.Song, Film: raw.Film}
	}
	if raw.Name != "" {
		return Nominee{Kind: KindPerson, Subject: raw.Name, Film: raw.Film}
	}

	film := raw.Film
	if film == "" {
		film = unknownFilm
	}
	n := Nominee{Film: film}

	switch {
	case raw.Country != "":
		n.Kind, n.Credit = KindInternational, raw.Country
	case raw.Writers != nil:
		n.Kind, n.Names = KindScreenplay, raw.Writers
	case raw.Directors != nil:
		n.Kind, n.Names = KindDirected, raw.Directors
	case raw.Filmmakers != nil:
		n.Kind, n.Names = KindCredits, raw.Filmmakers
	case raw.Editors != nil:
		n.Kind, n.Names = KindCredits, raw.Editors
	case raw.Artists != nil:
		n.Kind, n.Names = KindCredits, raw.Artists
	case raw.SoundTeam != nil:
		n.Kind, n.Names = KindTeam, raw.SoundTeam
	case raw.VFXTeam != nil:
		n.Kind, n.Names = KindTeam, raw.VFXTeam
	case raw.CastingDirector != "":
		n.Kind, n.Credit = KindCredit, raw.CastingDirector
	case raw.Cinematographer != "":
		n.Kind, n.Credit = KindCredit, raw.Cinematographer
	case raw.Composer != "":
		n.Kind, n.Credit = KindCredit, raw.Composer
	case raw.Designer != "":
		n.Kind, n.Credit = KindCredit, raw.Designer
	case raw.ProductionDesigner != "":
		n.Kind, n.Credit, n.SetDecorator = KindProductionDesign, raw.ProductionDesigner, raw.SetDecorator
	default:
		n.Kind = KindFilm
	}
	return n
}

// PickKey is the identifier stored in ballots and winners.
func (n Nominee) PickKey() string {
	switch n.Kind {
	case KindSong, KindPerson:
		return n.Subject
	default:
		return n.Film
	}
}

func (n Nominee) Display() Display {
	d := Display{PickKey: n.PickKey(), PrimaryLine: n.Film}
	switch n.Kind {
	case KindSong:
		d.PrimaryLine = `"` + n.Subject + `"`
		d.SecondaryLine = n.Film
	case KindPerson:
		d.PrimaryLine = n.Subject
		d.SecondaryLine = n.Film
	case KindInternational, KindCredit:
		d.SecondaryLine = n.Credit
	case KindScreenplay, KindCredits:
		d.SecondaryLine = strings.Join(n.Names, ", ")
	case KindDirected:
		d.SecondaryLine = "Dir. " + strings.Join(n.Names, ", ")
	case KindTeam:
		d.SecondaryLine = truncateTeam(n.Names)
	case KindProductionDesign:
		d.SecondaryLine = n.Credit + " / " + n.SetDecorator
	}
	return d
}

// FormatNominee resolves and renders raw in one step.
func FormatNominee(raw RawNominee) Display {
	return Resolve(raw).Display()
}

// truncateTeam keeps the first two names of long crews.
func truncateTeam(team []string) string {
	if len(team) > 2 {
		return team[0] + ", " + team[1] + "…"
	}
	return strings.Join(team, ", ")
}
