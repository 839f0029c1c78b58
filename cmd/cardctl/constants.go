package main

const (
	// DefaultCardFile matches the server's default card file path
	DefaultCardFile = "./data/cards.tsv"

	// DefaultDBPath matches the server's default database path
	DefaultDBPath = "./card_linker.db"

	// DefaultMissLimit is how many misses the misses command lists
	DefaultMissLimit = 20
)
