// Package style resolves style descriptors such as "Van Gogh - Starry Night"
// to a Kind and holds the constants each kind applies.
//
// The constants live in an embedded HCL table (styles.hcl) decoded once on
// first use. Resolution is first-match over Kinds(): the first kind whose
// match substring occurs in the descriptor wins, and a descriptor matching
// nothing resolves to Identity.
package style
