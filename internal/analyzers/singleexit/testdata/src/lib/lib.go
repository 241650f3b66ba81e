package lib

import (
	"fmt"
	"log"
	"os"
)

func Fail(err error) {
	fmt.Println(err)
	os.Exit(3) // want `os.Exit called outside package main`
}

func Fatal(err error) {
	log.Fatalf("boom: %v", err) // want `log.Fatalf called outside package main`
}

func Print(err error) {
	log.Printf("not fatal: %v", err)
}

type exiter struct{}

func (exiter) Exit(code int) {}

func Method() {
	exiter{}.Exit(1)
}
