/*
Package semtok reinterprets generic markdown tokens as the semantic tokens of
the data overlay.

Semantic Tokens Overview:
-------------------------
Ordinary prose formatting doubles as data syntax. The lexer rewrites each
markdown token into the role it plays in that overlay:

	Markdown Token                  Semantic Token
	--------------                  --------------
	[](alias "name")           ->   KeyAlias
	[](ignore)                 ->   IgnoreAlias
	[]($)                      ->   ObjectTerminator
	[](right:object "alias")   ->   KeyMetadata
	[36](int "override")       ->   PrimitiveLiteral
	**.key**                   ->   ObjectKey
	```code```                 ->   PrimitiveLiteral (string)
	1. ordered list            ->   List
	- unordered list           ->   items spliced into the parent
	| table |                  ->   Table
	# heading                  ->   ContextStart
	anything else              ->   Noise

Architecture:
-------------

	+--------------+   contexts   +-----------+   tokens   +-----------+
	| @contextify  | -----------> |  @semtok  | ---------> |  @parser  |
	+--------------+              +-----------+            +-----------+
	                                    |
	                              +-----+------+
	                              | @converter |  (type hint check)
	                              +------------+

The lexer keeps no state between tokens; each subtree is lexed on its own.
*/
package semtok
