package domain

import "testing"

func TestEdgeTypeValid(t *testing.T) {
	valid := []EdgeType{EdgeHasChild, EdgeHasKeyword, EdgeRequires, EdgePartOf}
	for _, et := range valid {
		if !et.Valid() {
			t.Fatalf("%s should be valid", et)
		}
	}

	invalid := []EdgeType{"", "has_child", "HAS_CHILD]->(x) DETACH DELETE x//", "FRIEND_OF"}
	for _, et := range invalid {
		if et.Valid() {
			t.Fatalf("%q should be invalid", et)
		}
	}
}
