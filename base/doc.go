/*

Package base provides base data structures and functions for recbench.

The base data structures and functions include:

* CSV Reading and Identifier Validation

* Random Generator

*/
package base
