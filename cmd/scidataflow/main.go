// Command scidataflow tracks research data files against a manifest
// and synchronizes them with remote repositories (FigShare, Zenodo, or
// a plain static URL), per spec.md. This is the "external collaborator"
// component: the core packages (manifest, digest, remote, transfer,
// reconcile) never import cobra or logrus directly.
package main

import "os"

func main() {
	os.Exit(Execute())
}
