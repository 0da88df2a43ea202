/*
Package expression compiles typed filters and field lists into DynamoDB expression
syntax and assembles them into request descriptors.

Filters:

	filters := storagemodels.NewFilters().
	    Add("age", storagemodels.Gt(18), storagemodels.Lt(65))

	frag, _ := expression.BuildFilter(filters)
	// frag.Expression == "(#age > :age0 OR #age < :age1 )"
	// frag.Names      == {"#age": "age"}
	// frag.Values     == {":age0": N(18), ":age1": N(65)}

Attributes are always referenced through "#<attribute>" placeholders and values
through ":<attribute><index>", so reserved words such as "status" or "name" never
reach the expression parser.

Requests:

	desc, err := expression.Assemble("users", "userId", storagemodels.ReadOptions{
	    Filters:         filters,
	    NegationFilters: storagemodels.NewFilters().Add("status", storagemodels.Eq("banned")),
	    Fields:          []string{"userName"},
	})
	// *desc.FilterExpression     == "(#age > :age0 OR #age < :age1 ) AND (NOT (#status = :status0 ))"
	// *desc.ProjectionExpression == "#userName,#userId"

Parse, Evaluate and Project interpret the same grammar in memory; the mock
datastore uses them to honour filters without DynamoDB.
*/
package expression
