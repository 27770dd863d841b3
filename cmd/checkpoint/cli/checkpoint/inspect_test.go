package checkpoint

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInspect(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		repo func() Repository
		want State
	}{
		{
			name: "not a repository",
			repo: func() Repository { return nil },
			want: State{HeadCommit: Unknown},
		},
		{
			name: "healthy repository",
			repo: func() Repository {
				r := newFakeRepo()
				r.changed = []string{"a.go", "b.go", ".checkpoint/checkpoints/latest-checkpoint.json"}
				r.ahead = 2
				return r
			},
			want: State{
				IsRepository:     true,
				ChangedFileCount: 2,
				CurrentBranch:    "main",
				HasUpstream:      true,
				CommitsAhead:     2,
				HeadCommit:       "1111111111111111111111111111111111111111",
			},
		},
		{
			name: "every query fails",
			repo: func() Repository {
				r := newFakeRepo()
				r.changedErr = errFake
				r.headErr = errFake
				r.branchErr = errFake
				return r
			},
			want: State{IsRepository: true, HeadCommit: Unknown},
		},
		{
			name: "no upstream",
			repo: func() Repository {
				r := newFakeRepo()
				r.upstreamErr = errFake
				r.ahead = 4
				return r
			},
			want: State{
				IsRepository:  true,
				CurrentBranch: "main",
				HeadCommit:    "1111111111111111111111111111111111111111",
			},
		},
		{
			name: "ahead count fails",
			repo: func() Repository {
				r := newFakeRepo()
				r.aheadErr = errFake
				return r
			},
			want: State{
				IsRepository:  true,
				CurrentBranch: "main",
				HasUpstream:   true,
				HeadCommit:    "1111111111111111111111111111111111111111",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Inspect(ctx, tt.repo())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestState_BranchOrUnknown(t *testing.T) {
	if got := (State{}).BranchOrUnknown(); got != Unknown {
		t.Errorf("BranchOrUnknown() = %q, want %q", got, Unknown)
	}
	if got := (State{CurrentBranch: "dev"}).BranchOrUnknown(); got != "dev" {
		t.Errorf("BranchOrUnknown() = %q, want dev", got)
	}
}
