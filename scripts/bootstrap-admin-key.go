package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fxrates/fxrates/internal/auth"
)

type output struct {
	Key  string `json:"key"`
	Hash string `json:"hash"`
}

// Mints an admin key and its argon2id hash. The key is shown once;
// put the hash in ADMIN_KEY_HASH.
func main() {
	format := flag.String("format", "plain", "Output format: plain or json")
	flag.Parse()

	generated, err := auth.GenerateAdminKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate admin key:", err)
		os.Exit(1)
	}

	out := output{
		Key:  generated.Plaintext,
		Hash: generated.Hash,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println("key: ", out.Key)
		fmt.Println("hash:", out.Hash)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
