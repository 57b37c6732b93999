package merge

import (
	"reflect"
	"testing"

	"github.com/facultyhub/pubdir/internal/publication"
)

func rec(title, source string, citations int) publication.Record {
	return publication.Record{Title: title, Type: "paper", Source: source, Citations: citations, Authors: []string{"A"}}
}

func titles(recs []publication.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Deep Nets", "deep nets"},
		{"  Deep   Nets\t", "deep nets"},
		{"DEEP NETS", "deep nets"},
		{"Deep Nets.", "deep nets."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeAndDedup_CaseOnlyDifferenceCollapsesLocalWins(t *testing.T) {
	local := []publication.Record{rec("A", "manual", 3)}
	external := []publication.Record{rec("a", "scholar", 9)}

	got := MergeAndDedup(local, external)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Source != "manual" || got[0].Title != "A" || got[0].Citations != 3 {
		t.Errorf("survivor = %+v, want the local record", got[0])
	}
}

func TestMerge_ExternalWinsOverwritesInPlace(t *testing.T) {
	local := []publication.Record{rec("First", "manual", 1), rec("Shared", "manual", 2)}
	external := []publication.Record{rec("shared", "scholar", 20), rec("Third", "scholar", 3)}

	res := Merge(local, external, ExternalWins)
	if want := []string{"First", "shared", "Third"}; !reflect.DeepEqual(titles(res.Records), want) {
		t.Errorf("titles = %v, want %v", titles(res.Records), want)
	}
	if res.Records[1].Source != "scholar" || res.Records[1].Citations != 20 {
		t.Errorf("collision survivor = %+v, want external record", res.Records[1])
	}
	if res.Stats.Overwrites != 1 || res.Stats.Duplicates != 1 || res.Stats.Unique != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestMerge_OrderIsFirstOccurrence(t *testing.T) {
	local := []publication.Record{rec("C", "manual", 0), rec("A", "manual", 0)}
	external := []publication.Record{rec("B", "scholar", 0), rec("c", "scholar", 0), rec("D", "scholar", 0)}

	got := titles(MergeAndDedup(local, external))
	want := []string{"C", "A", "B", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMerge_SameSourceLaterDuplicateReplaces(t *testing.T) {
	external := []publication.Record{rec("X", "scholar", 1), rec("x ", "scholar", 7)}
	got := MergeAndDedup(nil, external)
	if len(got) != 1 || got[0].Citations != 7 {
		t.Errorf("got %+v, want the later external duplicate", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	list := []publication.Record{rec("One", "manual", 1), rec("Two", "manual", 2), rec("one", "manual", 3)}
	distinct := len(MergeAndDedup(list, nil))

	got := MergeAndDedup(list, list)
	if len(got) != distinct {
		t.Errorf("self-merge len = %d, want %d", len(got), distinct)
	}
	again := MergeAndDedup(got, got)
	if !reflect.DeepEqual(titles(again), titles(got)) {
		t.Errorf("second self-merge changed titles: %v -> %v", titles(got), titles(again))
	}
}

func TestMerge_EmptyExternalEqualsLocalOnly(t *testing.T) {
	local := []publication.Record{rec("One", "manual", 1), rec("Two", "manual", 2)}
	got := MergeAndDedup(local, []publication.Record{})
	if !reflect.DeepEqual(titles(got), []string{"One", "Two"}) {
		t.Errorf("titles = %v", titles(got))
	}
	if len(MergeAndDedup(nil, nil)) != 0 {
		t.Error("merging two empty lists should be empty")
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	local := []publication.Record{rec("Shared", "manual", 1)}
	external := []publication.Record{rec("shared", "scholar", 5)}

	res := Merge(local, external, ExternalWins)
	res.Records[0].Authors[0] = "changed"
	res.Records[0].Title = "changed"

	if local[0].Title != "Shared" || external[0].Title != "shared" {
		t.Error("inputs were modified")
	}
	if external[0].Authors[0] != "A" {
		t.Error("output shares author slice with input")
	}
}

func TestMerge_PunctuationDifferencesAreNotDeduplicated(t *testing.T) {
	// Exact-match dedup is an accepted accuracy boundary.
	got := MergeAndDedup(
		[]publication.Record{rec("Deep Nets: A Survey", "manual", 0)},
		[]publication.Record{rec("Deep Nets - A Survey", "scholar", 0)},
	)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestMerge_SkipsBlankTitles(t *testing.T) {
	res := Merge([]publication.Record{rec("  ", "manual", 0)}, []publication.Record{rec("", "scholar", 0), rec("Ok", "scholar", 0)}, LocalWins)
	if res.Stats.Invalid != 2 || len(res.Records) != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestNewOnly(t *testing.T) {
	existing := []publication.Record{rec("Known Paper", "manual", 0)}
	incoming := []publication.Record{
		rec("known paper", "scholar", 4),
		rec("Fresh", "scholar", 1),
		rec("FRESH", "scholar", 2),
		rec("", "scholar", 0),
	}
	got := NewOnly(existing, incoming)
	if len(got) != 1 || got[0].Title != "Fresh" || got[0].Citations != 1 {
		t.Errorf("NewOnly = %+v, want only the first Fresh", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("external-wins") != ExternalWins {
		t.Error("external-wins not parsed")
	}
	if ParsePolicy("") != LocalWins || ParsePolicy("bogus") != LocalWins {
		t.Error("default policy should be local-wins")
	}
}
