package checker

// CompareForTest exposes compare.
var CompareForTest = compare
