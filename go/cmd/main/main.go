package main

import (
	"github.com/lunixbochs/futex/go/cmd"

	_ "github.com/lunixbochs/futex/go/cmd/bench"
	_ "github.com/lunixbochs/futex/go/cmd/dump"
	_ "github.com/lunixbochs/futex/go/cmd/probe"
)

func main() { cmd.Main() }
