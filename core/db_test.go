package core

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, limit int
		want        Pagination
		wantOffset  int
	}{
		{0, 0, Pagination{Page: 1, Limit: DefaultPageLimit}, 0},
		{-3, 10, Pagination{Page: 1, Limit: 10}, 0},
		{3, 10, Pagination{Page: 3, Limit: 10}, 20},
		{2, 1000, Pagination{Page: 2, Limit: MaxPageLimit}, MaxPageLimit},
	}
	for _, tt := range tests {
		got := NewPagination(tt.page, tt.limit)
		if got != tt.want {
			t.Errorf("NewPagination(%d, %d) = %+v; want %+v", tt.page, tt.limit, got, tt.want)
		}
		if got.Offset() != tt.wantOffset {
			t.Errorf("Offset() = %d; want %d", got.Offset(), tt.wantOffset)
		}
	}

	if meta := NewPagination(2, 5).Meta(11); meta != (PageMeta{Page: 2, Limit: 5, Total: 11}) {
		t.Errorf("Meta() = %+v", meta)
	}
}

func TestDBOrdering_String(t *testing.T) {
	if got := (DBOrdering{Field: "name", Ascending: true}).String(); got != "name ASC" {
		t.Errorf("String() = %q", got)
	}
	if got := (DBOrdering{Field: "created_at"}).String(); got != "created_at DESC" {
		t.Errorf("String() = %q", got)
	}
}
