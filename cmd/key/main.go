package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ride-session/internal/cli"
)

func main() {
	var (
		address = flag.String("address", "", "Ledger address of the session user (subject)")
		role    = flag.String("role", "RIDER", "Session role: RIDER | OBSERVER")
		secret  = flag.String("secret", "", "JWT HMAC secret (HS256)")
	)
	flag.Parse()

	if *address == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: key --address=<ledger-address> --role=RIDER --secret='<secret>'")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateSessionToken(*secret, *address, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("TOKEN:")
	fmt.Println(token)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:  %s\n", claims.Subject)
	fmt.Printf("  role: %s\n", claims.Role)
	fmt.Printf("  iat:  %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:  %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
}
