// Package restdoc resolves REST documentation metadata from documentation
// comments attached to declarations.
//
// A [Doc] wraps one [Declaration]. Construction parses the comment, groups
// every @restdoc-* tag by its suffix, classifies tag contents through a
// [Registry] and decides whether the declaration is a valid documentation
// target. Descriptions and the parent relation are resolved lazily and
// memoised, so a [Doc] can be shared between goroutines.
//
// Typical usage:
//
//	doc, err := restdoc.New(decl)
//	if err != nil {
//	    return err // programmer error, e.g. nil declaration
//	}
//	if !doc.IsValid() {
//	    log.Println(doc.Err())
//	    return nil
//	}
//	for _, tag := range doc.TagGroup("query") {
//	    q := tag.(*restdoc.QueryTag)
//	    ...
//	}
//
// Documentation problems (missing comment, ignore directive, abstract
// declaration, failing [Processor]) never surface as construction errors;
// they are reported through [Doc.IsValid] and [Doc.Err].
package restdoc
