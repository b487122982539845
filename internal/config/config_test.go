package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SMS_TEXTER", "")
	t.Setenv("SMS_TEXTERS", "")
	t.Setenv("SMS_FROM", "")

	cfg := FromEnv()
	if cfg.SMS.Default != "wittyflow" {
		t.Fatalf("default = %q", cfg.SMS.Default)
	}
	entry, ok := cfg.SMS.Texters["wittyflow"]
	if !ok || entry.Driver != "wittyflow" {
		t.Fatalf("texters = %+v", cfg.SMS.Texters)
	}
	if cfg.SMS.From != "Eben Gen" {
		t.Fatalf("from = %q", cfg.SMS.From)
	}
	if cfg.Queue.Tries != 1 || cfg.Queue.Timeout != 60*time.Second {
		t.Fatalf("queue = %+v", cfg.Queue)
	}
}

func TestFromEnvNamedTexters(t *testing.T) {
	t.Setenv("SMS_TEXTER", "primary")
	t.Setenv("SMS_TEXTERS", "primary, sales-line")
	t.Setenv("SMS_TEXTER_PRIMARY_DRIVER", "wittyflow")
	t.Setenv("SMS_TEXTER_SALES_LINE_DRIVER", "webhook")
	t.Setenv("SMS_TEXTER_SALES_LINE_FROM", "Storekd Inc")
	t.Setenv("SMS_TEXTER_SALES_LINE_AS_FLASH", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := FromEnv()
	if len(cfg.SMS.Texters) != 2 {
		t.Fatalf("texters = %+v", cfg.SMS.Texters)
	}
	sales := cfg.SMS.Texters["sales-line"]
	if sales.Driver != "webhook" || sales.From == nil || *sales.From != "Storekd Inc" {
		t.Fatalf("sales-line = %+v", sales)
	}
	if sales.AsFlash == nil || !*sales.AsFlash {
		t.Fatal("as_flash override not read")
	}
	if primary := cfg.SMS.Texters["primary"]; primary.From != nil {
		t.Fatal("primary should inherit from")
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
}

func TestResolved(t *testing.T) {
	s := SMS{From: "Eben Gen", To: "+233509297419", CallbackURI: "https://cb"}

	from, to, asFlash, cb := s.Resolved(Texter{})
	if from != "Eben Gen" || to != "+233509297419" || asFlash || cb != "https://cb" {
		t.Fatalf("globals not applied: %q %q %v %q", from, to, asFlash, cb)
	}

	own, empty, yes := "Storekd Inc", "", true
	from, to, asFlash, _ = s.Resolved(Texter{From: &own, To: &empty, AsFlash: &yes})
	if from != "Storekd Inc" || to != "" || !asFlash {
		t.Fatalf("overrides not applied: %q %q %v", from, to, asFlash)
	}
}
