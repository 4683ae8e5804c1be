// Command jdeb serves the disposable email blocker: a client script that checks
// addresses typed into signup and login forms, the check API it talks to and an
// admin screen for the messages shown to visitors.
package main
