// Package command tokenizes and classifies raw command lines before they
// are dispatched to store nodes.
package command

import (
	"fmt"
	"strings"
)

// Kind tells whether a command may be executed in a single request/response
// exchange.
type Kind int

const (
	// Executable commands are dispatched to the store.
	Executable Kind = iota
	// Unsupported commands put the connection into a streaming,
	// replication or transaction mode, or change its session state.
	Unsupported
	// Blocking commands may hold the connection indefinitely.
	Blocking
)

func (k Kind) String() string {
	switch k {
	case Executable:
		return "executable"
	case Unsupported:
		return "unsupported"
	case Blocking:
		return "blocking"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DefaultUnsupportedCommands switch the connection out of plain
// request/response mode or leave state on a pooled connection that later
// requests would inherit.
var DefaultUnsupportedCommands = []string{
	"monitor",
	"subscribe",
	"psubscribe",
	"ssubscribe",
	"sync",
	"psync",
	"script debug",
	// transactions span several requests on one connection
	"multi",
	"exec",
	"discard",
	"watch",
	"unwatch",
	// session state
	"auth",
	"hello",
	"select",
	"reset",
	"quit",
	"readonly",
	"readwrite",
	"client reply",
	"client setname",
	"client setinfo",
	"client tracking",
	"client no-evict",
	"client no-touch",
}

// DefaultBlockingCommands wait server-side for data or replication.
var DefaultBlockingCommands = []string{
	"blpop",
	"brpop",
	"brpoplpush",
	"blmove",
	"blmpop",
	"bzpopmin",
	"bzpopmax",
	"bzmpop",
	"wait",
	"waitaof",
}

// DefaultBlockingOptions maps verbs that block only when given an option
// to that option. Options are looked for before the STREAMS keyword.
var DefaultBlockingOptions = map[string]string{
	"xread":      "block",
	"xreadgroup": "block",
}

// keyless verbs never take a key as first argument.
var keyless = toSet([]string{
	"acl", "asking", "auth", "bgrewriteaof", "bgsave", "client", "cluster",
	"command", "config", "dbsize", "debug", "discard", "echo", "eval",
	"evalsha", "eval_ro", "evalsha_ro", "exec", "failover", "fcall",
	"fcall_ro", "flushall", "flushdb", "function", "hello", "info", "keys",
	"lastsave", "latency", "lolwut", "migrate", "module", "multi", "ping",
	"publish", "pubsub", "quit", "randomkey", "readonly", "readwrite",
	"replicaof", "reset", "role", "save", "scan", "script", "select",
	"shutdown", "slaveof", "slowlog", "spublish", "swapdb", "time",
	"unwatch", "xread", "xreadgroup",
})

// subcommandKeyed verbs take a subcommand then a key.
var subcommandKeyed = toSet([]string{"bitop", "memory", "object", "xgroup", "xinfo"})

// Classification is the outcome of classifying one command line.
type Classification struct {
	Kind Kind
	// Verb is the lower-cased command name, or the matched "verb
	// subcommand" entry for rejected commands.
	Verb string
	// Args holds every token as typed, verb included.
	Args []string
	// Key is the key the command addresses, empty for keyless commands.
	Key string
}

// Rejected reports whether the command must not be dispatched.
func (c Classification) Rejected() bool {
	return c.Kind != Executable
}

// RejectionMessage is the Fail response recorded for a rejected command.
func (c Classification) RejectionMessage() string {
	return NotSupportedMessage(c.Verb)
}

// NotSupportedMessage formats the message returned for a rejected verb.
func NotSupportedMessage(verb string) string {
	return fmt.Sprintf("%s is not supported", strings.ToUpper(verb))
}

// Classifier matches command lines against the unsupported and blocking
// verb sets. It is safe for concurrent use.
type Classifier struct {
	unsupported     map[string]struct{}
	blocking        map[string]struct{}
	blockingOptions map[string]string
}

// NewClassifier builds a classifier from verb lists. Entries are either a
// verb ("subscribe") or a verb and subcommand ("script debug"). A nil list
// selects the built-in defaults; a nil blocking list also enables
// DefaultBlockingOptions.
func NewClassifier(unsupported, blocking []string) *Classifier {
	if unsupported == nil {
		unsupported = DefaultUnsupportedCommands
	}
	options := map[string]string{}
	if blocking == nil {
		blocking = DefaultBlockingCommands
		options = DefaultBlockingOptions
	}
	return &Classifier{
		unsupported:     toSet(unsupported),
		blocking:        toSet(blocking),
		blockingOptions: options,
	}
}

// Classify tokenizes line and decides whether it may be executed.
func (c *Classifier) Classify(line string) (Classification, error) {
	args, err := Tokenize(line)
	if err != nil {
		return Classification{}, err
	}
	if len(args) == 0 {
		return Classification{}, ErrEmptyCommand
	}

	verb := strings.ToLower(args[0])
	result := Classification{Kind: Executable, Verb: verb, Args: args}

	if entry, ok := lookup(c.unsupported, args); ok {
		result.Kind, result.Verb = Unsupported, entry
		return result, nil
	}
	if entry, ok := lookup(c.blocking, args); ok {
		result.Kind, result.Verb = Blocking, entry
		return result, nil
	}
	if option, ok := c.blockingOptions[verb]; ok && hasOption(args, option) {
		result.Kind, result.Verb = Blocking, verb+" "+option
		return result, nil
	}

	result.Key = keyOf(verb, args)
	return result, nil
}

// lookup prefers the "verb subcommand" entry over the bare verb.
func lookup(set map[string]struct{}, args []string) (string, bool) {
	verb := strings.ToLower(args[0])
	if len(args) > 1 {
		pair := verb + " " + strings.ToLower(args[1])
		if _, ok := set[pair]; ok {
			return pair, true
		}
	}
	if _, ok := set[verb]; ok {
		return verb, true
	}
	return "", false
}

// hasOption reports whether option appears among the options of a stream
// read. GROUP takes two values, which are skipped.
func hasOption(args []string, option string) bool {
	for i := 1; i < len(args); i++ {
		switch tok := strings.ToLower(args[i]); tok {
		case "streams":
			return false
		case "group":
			i += 2
		case option:
			return true
		}
	}
	return false
}

func keyOf(verb string, args []string) string {
	if _, ok := keyless[verb]; ok {
		return ""
	}
	if _, ok := subcommandKeyed[verb]; ok {
		if len(args) > 2 {
			return args[2]
		}
		return ""
	}
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

func toSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e = strings.Join(strings.Fields(strings.ToLower(e)), " ")
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}
