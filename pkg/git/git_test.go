package git

import (
	"testing"
)

func TestWebURL(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		want    string
		wantErr bool
	}{
		{
			name:   "GitHub scp style",
			remote: "git@github.com:owner/repo.git",
			want:   "https://github.com/owner/repo",
		},
		{
			name:   "GitHub https",
			remote: "https://github.com/owner/repo.git",
			want:   "https://github.com/owner/repo",
		},
		{
			name:   "ssh scheme with port",
			remote: "ssh://git@gitlab.com:2222/group/sub/repo.git",
			want:   "https://gitlab.com/group/sub/repo",
		},
		{
			name:   "https with user info",
			remote: "https://org@dev.azure.com/org/project/_git/repo",
			want:   "https://dev.azure.com/org/project/_git/repo",
		},
		{
			name:   "Azure DevOps ssh",
			remote: "git@ssh.dev.azure.com:v3/org/project/repo",
			want:   "https://dev.azure.com/org/project/_git/repo",
		},
		{
			name:   "trailing whitespace",
			remote: "  https://codeberg.org/owner/repo  \n",
			want:   "https://codeberg.org/owner/repo",
		},
		{
			name:    "empty",
			remote:  "",
			wantErr: true,
		},
		{
			name:    "local path",
			remote:  "/srv/git/repo.git",
			wantErr: true,
		},
		{
			name:    "host only",
			remote:  "https://github.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WebURL(tt.remote)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WebURL(%q) error = %v, wantErr %v", tt.remote, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("WebURL(%q) = %q, want %q", tt.remote, got, tt.want)
			}
		})
	}
}

func TestRepositoryName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/owner/repo", "repo"},
		{"https://github.com/owner/repo/", "repo"},
		{"https://dev.azure.com/org/project/_git/service", "service"},
	}

	for _, tt := range tests {
		if got := RepositoryName(tt.url); got != tt.want {
			t.Errorf("RepositoryName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
