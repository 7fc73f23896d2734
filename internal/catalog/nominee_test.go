package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNominee(t *testing.T) {
	cases := []struct {
		name string
		raw  RawNominee
		want Display
	}{
		{
			name: "song",
			raw:  RawNominee{Song: "What Was I Made For?", Film: "Barbie", Songwriters: []string{"Billie Eilish"}},
			want: Display{PickKey: "What Was I Made For?", PrimaryLine: `"What Was I Made For?"`, SecondaryLine: "Barbie"},
		},
		{
			name: "person",
			raw:  RawNominee{Name: "Cillian Murphy", Film: "Oppenheimer"},
			want: Display{PickKey: "Cillian Murphy", PrimaryLine: "Cillian Murphy", SecondaryLine: "Oppenheimer"},
		},
		{
			name: "song wins over name",
			raw:  RawNominee{Song: "I'm Just Ken", Name: "Mark Ronson", Film: "Barbie"},
			want: Display{PickKey: "I'm Just Ken", PrimaryLine: `"I'm Just Ken"`, SecondaryLine: "Barbie"},
		},
		{
			name: "bare film",
			raw:  RawNominee{Film: "Past Lives"},
			want: Display{PickKey: "Past Lives", PrimaryLine: "Past Lives"},
		},
		{
			name: "missing film",
			raw:  RawNominee{Composer: "John Williams"},
			want: Display{PickKey: "Unknown", PrimaryLine: "Unknown", SecondaryLine: "John Williams"},
		},
		{
			name: "country",
			raw:  RawNominee{Film: "Perfect Days", Country: "Japan", Directors: []string{"Wim Wenders"}},
			want: Display{PickKey: "Perfect Days", PrimaryLine: "Perfect Days", SecondaryLine: "Japan"},
		},
		{
			name: "writers",
			raw:  RawNominee{Film: "Barbie", Writers: []string{"Greta Gerwig", "Noah Baumbach"}},
			want: Display{PickKey: "Barbie", PrimaryLine: "Barbie", SecondaryLine: "Greta Gerwig, Noah Baumbach"},
		},
		{
			name: "directors",
			raw:  RawNominee{Film: "Nimona", Directors: []string{"Nick Bruno", "Troy Quane"}},
			want: Display{PickKey: "Nimona", PrimaryLine: "Nimona", SecondaryLine: "Dir. Nick Bruno, Troy Quane"},
		},
		{
			name: "filmmakers before editors",
			raw:  RawNominee{Film: "The After", Filmmakers: []string{"Misan Harriman"}, Editors: []string{"Someone"}},
			want: Display{PickKey: "The After", PrimaryLine: "The After", SecondaryLine: "Misan Harriman"},
		},
		{
			name: "editors",
			raw:  RawNominee{Film: "Oppenheimer", Editors: []string{"Jennifer Lame"}},
			want: Display{PickKey: "Oppenheimer", PrimaryLine: "Oppenheimer", SecondaryLine: "Jennifer Lame"},
		},
		{
			name: "artists",
			raw:  RawNominee{Film: "Golda", Artists: []string{"Karen Hartley Thomas", "Suzi Battersby"}},
			want: Display{PickKey: "Golda", PrimaryLine: "Golda", SecondaryLine: "Karen Hartley Thomas, Suzi Battersby"},
		},
		{
			name: "long sound team is truncated",
			raw:  RawNominee{Film: "Oppenheimer", SoundTeam: []string{"Willie Burton", "Richard King", "Gary A. Rizzo"}},
			want: Display{PickKey: "Oppenheimer", PrimaryLine: "Oppenheimer", SecondaryLine: "Willie Burton, Richard King…"},
		},
		{
			name: "two person vfx team is not truncated",
			raw:  RawNominee{Film: "The Zone of Interest", VFXTeam: []string{"Tarn Willers", "Johnnie Burn"}},
			want: Display{PickKey: "The Zone of Interest", PrimaryLine: "The Zone of Interest", SecondaryLine: "Tarn Willers, Johnnie Burn"},
		},
		{
			name: "casting director before cinematographer",
			raw:  RawNominee{Film: "Maestro", CastingDirector: "Shayna Markowitz", Cinematographer: "Matthew Libatique"},
			want: Display{PickKey: "Maestro", PrimaryLine: "Maestro", SecondaryLine: "Shayna Markowitz"},
		},
		{
			name: "designer",
			raw:  RawNominee{Film: "Barbie", Designer: "Jacqueline Durran"},
			want: Display{PickKey: "Barbie", PrimaryLine: "Barbie", SecondaryLine: "Jacqueline Durran"},
		},
		{
			name: "production design",
			raw:  RawNominee{Film: "Barbie", ProductionDesigner: "Sarah Greenwood", SetDecorator: "Katie Spencer"},
			want: Display{PickKey: "Barbie", PrimaryLine: "Barbie", SecondaryLine: "Sarah Greenwood / Katie Spencer"},
		},
		{
			name: "production design without decorator",
			raw:  RawNominee{Film: "Napoleon", ProductionDesigner: "Arthur Max"},
			want: Display{PickKey: "Napoleon", PrimaryLine: "Napoleon", SecondaryLine: "Arthur Max / "},
		},
		{
			name: "empty list still selects its branch",
			raw:  RawNominee{Film: "Untitled", Writers: []string{}, Composer: "Someone"},
			want: Display{PickKey: "Untitled", PrimaryLine: "Untitled", SecondaryLine: ""},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatNominee(tc.raw))
		})
	}
}

func TestFormatNomineeDeterministic(t *testing.T) {
	raw := RawNominee{Film: "Napoleon", VFXTeam: []string{"A", "B", "C", "D"}}
	first := FormatNominee(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FormatNominee(raw))
	}
}

func TestResolveKinds(t *testing.T) {
	assert.Equal(t, KindSong, Resolve(RawNominee{Song: "x"}).Kind)
	assert.Equal(t, KindPerson, Resolve(RawNominee{Name: "x"}).Kind)
	assert.Equal(t, KindInternational, Resolve(RawNominee{Film: "x", Country: "y"}).Kind)
	assert.Equal(t, KindTeam, Resolve(RawNominee{Film: "x", SoundTeam: []string{"a"}}).Kind)
	assert.Equal(t, KindProductionDesign, Resolve(RawNominee{Film: "x", ProductionDesigner: "a"}).Kind)
	assert.Equal(t, KindFilm, Resolve(RawNominee{Film: "x"}).Kind)
	assert.Equal(t, "production_design", KindProductionDesign.String())
	assert.Equal(t, "unknown", Kind(200).String())
}
