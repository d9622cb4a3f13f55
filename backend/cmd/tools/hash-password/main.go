package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	fmt.Fprint(os.Stderr, "Admin password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Fatalf("Failed to read password: %v", err)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		log.Fatal("Password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println("=================================================")
	fmt.Println("  Admin Password Hash (bcrypt)")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Println("Add this to your config/private.yaml:")
	fmt.Println("admin:")
	fmt.Printf("  password_hash: \"%s\"\n", hash)
	fmt.Println()
	fmt.Println("or export it:")
	fmt.Printf("SITE_ADMIN_PASSWORD_HASH='%s'\n", hash)
	fmt.Println("=================================================")
}
