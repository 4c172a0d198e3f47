package main

import "testing"

func TestCaption(t *testing.T) {
	joints := []string{"hip", "knee"}
	tests := []struct {
		col  int
		want string
	}{
		{0, "q hip"},
		{1, "q knee"},
		{2, "qp hip"},
		{3, "qp knee"},
		{4, "x4"},
	}
	for _, tt := range tests {
		if got := caption(joints, tt.col); got != tt.want {
			t.Errorf("caption(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	configFile = ""

	cfg, err := loadConfig(nil)
	if err != nil || cfg.Name != "pendulum" {
		t.Fatalf("default config = %v, %v", cfg, err)
	}

	cfg, err = loadConfig([]string{"chain/five"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Joints) != 5 {
		t.Errorf("chain/five has %d joints", len(cfg.Joints))
	}

	if _, err := loadConfig([]string{"chain/none"}); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}
