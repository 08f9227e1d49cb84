// Dataval validates tabular datasets against declared column types and
// simple data-quality rules.
//
// Usage:
//
//	# Run every check of a suite file
//	dataval run --config suite.yaml
//
//	# Ad-hoc column-type check of one file
//	dataval check people.csv --integer-cols 2 --schema name=text
//
//	# Infer column kinds and print a starter suite
//	dataval probe https://example.com/people.csv --format yaml
//
//	# Lint a suite file
//	dataval lint --config suite.yaml
package main

func main() {
	Execute()
}
