// Package sieverule implements a typed model of Sieve (RFC 5228) filter rules
// and the semantic validation of their commands.
//
// The package does not lex or print Sieve text. A tokenizer hands it, per
// command occurrence, the command keyword and its flat argument list; the
// package binds those arguments against a closed catalog of command
// descriptors and either returns an immutable command or an error.
//
// # Commands
//
// Action commands (keep, discard, redirect, fileinto, reject, stop, vacation,
// notify, addflag, pgp_encrypt, addheader, deleteheader, set) and test
// commands (address, envelope, exists, false, true, not, size, header, allof,
// anyof, body, currentdate) each have a Descriptor describing:
//   - the accepted number of positional arguments
//   - the accepted tags and how many values follow each tag
//   - the match types, address parts and comparators they accept
//   - the capability the command itself requires
//
// # Binding
//
//	vacation, err := sieverule.NewActionCommand(sieverule.Vacation,
//		sieverule.Tag(":days"), sieverule.Number(7),
//		sieverule.Tag(":addresses"), sieverule.StringList("foo@example.com"),
//		sieverule.String("I am away"))
//
//	subject, err := sieverule.NewTestCommand(sieverule.HeaderTest, []sieverule.Arg{
//		sieverule.Tag(":contains"),
//		sieverule.StringList("subject"),
//		sieverule.StringList("Zitat"),
//	})
//
// Errors wrap the sentinels of package consts (ErrUnknownTag,
// ErrArgumentCount, ErrArgumentOrder, ErrComparatorUnsupported, ...). The
// :comparator tag is always rejected.
//
// # Capabilities
//
// Every command reports the capabilities it needs through Required. Rules and
// rule sets union the capabilities of their commands, walking nested test
// trees and if bodies. The result is what a serializer puts in the script's
// require statement.
//
// # Rules
//
// A Rule holds an optional require command followed by if/elsif/else
// branches, together with the metadata of its "## Flag:" comment line.
// Accessors report absence with a boolean instead of an error so that rules
// which failed to parse can still be held and shown.
package sieverule
