// Command token mints a staff access token for the reservation write
// endpoints, signed with JWT_SECRET.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/lunchly/internal/utils"
)

func main() {
	staff := flag.String("staff", "", "staff identifier stored in the sub claim")
	role := flag.String("role", utils.RoleHost, "role claim")
	ttl := flag.Int("ttl", 60, "lifetime in minutes")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}
	tok, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), *staff, *role, *ttl)
	if err != nil {
		log.Fatalf("token: %v", err)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format("2006-01-02 15:04 MST"))
}
