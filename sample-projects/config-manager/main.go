package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	keystone "github.com/keystone-go/keystone"
	"github.com/keystone-go/keystone/codec"
	g "github.com/keystone-go/keystone/dsl"
)

// Config is the effective application configuration. Every field has a
// default, so an empty file (or no file at all) yields a runnable setup.
type Config struct {
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	Environment string        `json:"environment"`
	LogLevel    string        `json:"logLevel"`
	Timeout     time.Duration `json:"timeout"`
	Origins     []string      `json:"origins"`
}

var configRecord = g.RecordOf[Config]().
	Field("host", g.String()).Doc("Listen address.").Default("0.0.0.0").
	Field("port", g.Int()).Default(8080).
	Field("environment", g.String()).Default("development").
	Field("logLevel", g.String()).Default("info").
	Field("timeout", g.Duration()).Default(30*time.Second).
	Field("origins", g.Of[[]string]()).Doc("Allowed CORS origins.").Default([]string{"*"}).
	Named("Config").
	Derive(keystone.CapEquality, keystone.CapFormatting).
	MustBind()

var sampleYAML = []byte(`# Only what differs from the defaults needs to be written.
port: 9090
environment: production
origins:
  - https://example.com
`)

func main() {
	ctx := context.Background()

	data := sampleYAML
	if len(os.Args) > 1 {
		b, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		data = b
	}

	dm, err := codec.YAML(configRecord).DecodeWithMeta(ctx, data)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	fmt.Println("effective config:", configRecord.Format(dm.Value))
	fmt.Println("defaulted fields:", dm.Meta.DefaultedPaths())

	// Collection defaults are evaluated fresh per instance, so mutating one
	// configuration never leaks into the next.
	a := configRecord.New()
	a.Origins[0] = "mutated"
	b := configRecord.New()
	fmt.Println("a origins:", a.Origins)
	fmt.Println("b origins:", b.Origins)

	// Defaults also make configs comparable against the baseline.
	fmt.Println("file config equals defaults:", configRecord.Equal(dm.Value, configRecord.New()))
}
