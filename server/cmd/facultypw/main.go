// Command facultypw prints the bcrypt hash of a faculty password, ready to
// be stored in the environment variable named by server.auth.password_hash_env.
//
//	facultypw -password 's3cret'
//	echo 's3cret' | facultypw
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/auth"
)

func main() {
	pw := flag.String("password", "", "password to hash; read from stdin when empty")
	envName := flag.String("env", "FACULTY_PASSWORD_HASH", "print as NAME=hash for a .env file; empty prints the bare hash")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	secret := *pw
	if secret == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			slog.Error("facultypw: read password", "err", err)
			os.Exit(1)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		slog.Error("facultypw: empty password")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(secret)
	if err != nil {
		slog.Error("facultypw: hash", "err", err)
		os.Exit(1)
	}
	if *envName == "" {
		fmt.Println(hash)
		return
	}
	// Single quotes stop godotenv from expanding the $ segments of the hash.
	fmt.Printf("%s='%s'\n", *envName, hash)
}
