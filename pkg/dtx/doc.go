// Package dtx reads Fiberworks PCW ".dtx" weaving pattern files.
//
// # Format
//
// A dtx file is line oriented. Leading and trailing whitespace is ignored,
// as are blank lines. A line starting with "@@" opens a section:
//
//	@@Threading
//	1 2 3 4 1 2 3 4
//	1 2 3 4
//
// Inside a section, a line starting with "%%" is a metadata entry whose key
// is the first word and whose optional value is the rest of the line. Every
// other line is data.
//
// # Decoding
//
// Reading happens in two steps. [Tokenize] splits the text into [Sections]
// whose data is [RawLines]. [Decode] then replaces the data of the sections
// it knows with a typed variant:
//
//   - threading, warp/weft colors, warp/weft spacing: [IntSequence], an
//     integer stream that may wrap across any number of lines
//   - treadling: [PickGroups], where "1, 3, 4 2 1, 4" is three picks
//   - tieup, liftplan: [RowStrings] of '0'/'1' characters
//   - color palette: [RawLines] of "R,G,B" entries, checked by the encoder
//
// [Read] performs both steps and assembles a [pattern.Pattern].
package dtx
