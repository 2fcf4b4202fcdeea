package entity

import "testing"

type Book struct {
	ID    string
	Title string
	Year  int
}

func newAdapter() *Adapter[Book, string] {
	return CreateAdapter[Book, string](func(b Book) string { return b.ID })
}

func TestAddOneInsertsAtEnd(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddOne(s, Book{ID: "1", Title: "A"})
	s = a.AddOne(s, Book{ID: "2", Title: "B"})

	if len(s.Ids) != 2 || s.Ids[0] != "1" || s.Ids[1] != "2" {
		t.Fatalf("ids = %v, want [1 2]", s.Ids)
	}
	if len(s.Entities) != 2 {
		t.Fatalf("entities len = %d, want 2", len(s.Entities))
	}
}

func TestAddOneOverwritesWithoutMovingPosition(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddMany(s, []Book{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}})
	s = a.AddOne(s, Book{ID: "1", Title: "A2"})

	if len(s.Ids) != 2 || s.Ids[0] != "1" {
		t.Fatalf("expected id 1 to keep its position, ids = %v", s.Ids)
	}
	if s.Entities["1"].Title != "A2" {
		t.Fatalf("expected entity 1 updated, got %+v", s.Entities["1"])
	}
}

func TestUpdateOneMergesFields(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddOne(s, Book{ID: "1", Title: "A", Year: 2000})
	s = a.UpdateOne(s, Update[Book, string]{Id: "1", Apply: func(b *Book) { b.Year = 2001 }})

	if s.Entities["1"].Title != "A" || s.Entities["1"].Year != 2001 {
		t.Fatalf("unexpected merged entity: %+v", s.Entities["1"])
	}
}

func TestUpdateOneOnMissingIdIsNoop(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddOne(s, Book{ID: "1", Title: "A"})
	before := s
	after := a.UpdateOne(s, Update[Book, string]{Id: "missing", Apply: func(b *Book) { b.Title = "z" }})

	if len(after.Ids) != len(before.Ids) {
		t.Fatalf("expected no-op update to leave ids unchanged")
	}
}

func TestUpsertManyInsertsAndReplaces(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddOne(s, Book{ID: "1", Title: "A"})
	s = a.UpsertMany(s, []Book{{ID: "1", Title: "A-new"}, {ID: "2", Title: "B"}})

	if len(s.Ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", s.Ids)
	}
	if s.Entities["1"].Title != "A-new" {
		t.Fatalf("expected upsert to replace existing entity")
	}
}

func TestRemoveOneDropsIdAndEntity(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddMany(s, []Book{{ID: "1"}, {ID: "2"}})
	s = a.RemoveOne(s, "1")

	if len(s.Ids) != 1 || s.Ids[0] != "2" {
		t.Fatalf("ids = %v, want [2]", s.Ids)
	}
	if _, ok := s.Entities["1"]; ok {
		t.Fatal("expected entity 1 removed")
	}
}

func TestRemoveAllEmptiesCollection(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddMany(s, []Book{{ID: "1"}, {ID: "2"}})
	s = a.RemoveAll(s)

	if len(s.Ids) != 0 || len(s.Entities) != 0 {
		t.Fatal("expected empty collection")
	}
}

func TestSortComparatorKeepsIdsOrdered(t *testing.T) {
	a := CreateAdapter[Book, string](func(b Book) string { return b.ID },
		WithSortComparator[Book, string](func(x, y Book) bool { return x.Year < y.Year }))
	s := a.GetInitialState()
	s = a.AddMany(s, []Book{{ID: "c", Year: 2003}, {ID: "a", Year: 2001}, {ID: "b", Year: 2002}})

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if s.Ids[i] != id {
			t.Fatalf("ids = %v, want %v", s.Ids, want)
		}
	}
}

func TestSelectorsSelectAllAndTotal(t *testing.T) {
	a := newAdapter()
	s := a.GetInitialState()
	s = a.AddMany(s, []Book{{ID: "1"}, {ID: "2"}})
	sel := a.GetSelectors()

	if sel.SelectTotal(s) != 2 {
		t.Fatalf("total = %d, want 2", sel.SelectTotal(s))
	}
	all1 := sel.SelectAll(s)
	all2 := sel.SelectAll(s)
	if len(all1) != 2 || &all1[0] != &all2[0] {
		t.Fatal("expected memoized SelectAll to return the same backing array")
	}

	if _, ok := sel.SelectByID(s, "missing"); ok {
		t.Fatal("expected missing id to report not found")
	}
}
