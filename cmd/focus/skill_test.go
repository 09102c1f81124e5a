// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, confirmation handling, and file content.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedSkill(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}

	text := string(content)
	if !strings.HasPrefix(text, "---\nname: focus\n") {
		t.Error("Expected YAML frontmatter naming the focus skill")
	}
	for _, marker := range []string{"focus add", "focus analyze", "focus load"} {
		if !strings.Contains(text, marker) {
			t.Errorf("Expected %q in skill content", marker)
		}
	}
}

func TestInstallSkillWritesFile(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(home, true, strings.NewReader(""), &out); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	skillPath := filepath.Join(home, ".claude", "skills", "focus", "SKILL.md")
	written, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	embedded, _ := skillFS.ReadFile("skill/SKILL.md")
	if !bytes.Equal(written, embedded) {
		t.Error("Installed skill differs from embedded content")
	}
	if !strings.Contains(out.String(), "Installed focus skill") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestInstallSkillConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		installed bool
	}{
		{"yes", "y\n", true},
		{"full yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			var out bytes.Buffer

			if err := installSkill(home, false, strings.NewReader(tt.input), &out); err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}

			_, err := os.Stat(filepath.Join(home, ".claude", "skills", "focus", "SKILL.md"))
			if tt.installed && err != nil {
				t.Errorf("Expected skill to be installed: %v", err)
			}
			if !tt.installed && err == nil {
				t.Error("Expected no skill file after declining")
			}
		})
	}
}

func TestInstallSkillOverwrites(t *testing.T) {
	home := t.TempDir()
	skillPath := filepath.Join(home, ".claude", "skills", "focus", "SKILL.md")
	if err := os.MkdirAll(filepath.Dir(skillPath), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(skillPath, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := installSkill(home, true, strings.NewReader(""), &out); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Error("Expected overwrite note")
	}
	written, _ := os.ReadFile(skillPath)
	if string(written) == "old" {
		t.Error("Expected skill file to be overwritten")
	}
}
