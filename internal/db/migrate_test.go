package db

import "testing"

func TestPgxURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "postgres_scheme",
			in:   "postgres://u:p@127.0.0.1:5432/examproctor?sslmode=disable",
			want: "pgx5://u:p@127.0.0.1:5432/examproctor?sslmode=disable",
		},
		{
			name: "postgresql_scheme",
			in:   "postgresql://u:p@127.0.0.1:5432/examproctor?sslmode=disable",
			want: "pgx5://u:p@127.0.0.1:5432/examproctor?sslmode=disable",
		},
		{
			name: "already_pgx5",
			in:   "pgx5://u:p@127.0.0.1:5432/examproctor",
			want: "pgx5://u:p@127.0.0.1:5432/examproctor",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := pgxURL(tt.in); got != tt.want {
				t.Fatalf("pgxURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
