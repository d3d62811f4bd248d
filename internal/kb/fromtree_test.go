package kb

import (
	"reflect"
	"testing"

	"wholecell/internal/objtree"
)

func TestFromTreeRoundtrip(t *testing.T) {
	sd, err := Build(testRaw())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tree, err := objtree.Materialize(sd, objtree.Options{Path: "simData"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	got, err := FromTree(tree)
	if err != nil {
		t.Fatalf("from tree: %v", err)
	}
	if !reflect.DeepEqual(got, sd) {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", got, sd)
	}
}

func TestFromTreeRejectsNonMapping(t *testing.T) {
	if _, err := FromTree([]any{1, 2}); err == nil {
		t.Fatal("expected error for non-mapping root")
	}
}

func TestFromTreeRejectsWrongLeafType(t *testing.T) {
	sd, err := Build(testRaw())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tree, err := objtree.Materialize(sd, objtree.Options{Path: "simData"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	root := tree.(map[string]any)
	root["MoleculeMasses"] = "not a struct array"
	if _, err := FromTree(root); err == nil {
		t.Fatal("expected error for corrupted masses leaf")
	}
}
