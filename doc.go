/* Package main: scopevm -- a scoped stack machine

scopevm runs programs written in a small line oriented assembly language. A
program is a flat list of instructions; execution starts after the label
$$Function__main_$$ and ends when the top level scope is left, resulting in
the value on top of the stack:

	lbl $$Function_double$$
	mov _n_ pop
	* _n_ 2 push
	out

	lbl $$Function__main_$$
	mov push 21
	call $$Function_double$$
	out

Values are either 64-bit float numbers or texts. Variables like _n_ live in
the scope of the routine that assigns them: every call starts with a fresh
empty scope, and nothing outside the current scope is visible. Arguments and
results pass through the value stack instead, which all routines share,
through the push target and the pop operand.

Binary operations evaluate their first operand, then their second. The
arithmetic and ordering operations + - / % < <= > >= take the second operand
as their left hand side, so that "- pop pop push" subtracts the top of the
stack from the value under it, and "< 2 _n_ _small_" tests whether _n_ is
less than 2. The others, * & | == !=, take their operands in order.

The read instruction parses a line of input as a literal, either a number or
a quoted text, and pushes it; prn writes a value as a line of output.

Usage:

	scopevm [-config file.toml] [-trace] [-dump] [-timeout 5s] program.4km

See config.go for the settings that may also be read from a TOML file.
*/
package main
